package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_CanonicalEncoding(t *testing.T) {
	raw, err := Document{BasketID: "b1", TotalItems: 2}.Marshal()
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "basket_document", raw)
}

func TestDocument_RoundTrip(t *testing.T) {
	in := []byte(`{"basketId":"b1","totalItems":2}`)
	d, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, Document{BasketID: "b1", TotalItems: 2}, d)

	out, err := d.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestParse_IgnoresUnknownFields(t *testing.T) {
	d, err := Parse([]byte(`{"basketId":"b1","totalItems":1,"loading":true}`))
	require.NoError(t, err)
	assert.Equal(t, "b1", d.BasketID)
}

func TestLoad_MissingKeyYieldsDefault(t *testing.T) {
	d, err := Load(context.Background(), NewMemoryStorage(), BasketKey)
	require.NoError(t, err)
	assert.Equal(t, Document{}, d)
}

func TestLoad_MalformedYieldsDefaultAndPersistenceError(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{not json"},
		{"wrong type", `{"basketId":42}`},
		{"negative count", `{"basketId":"b1","totalItems":-3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStorage()
			require.NoError(t, s.SetItem(ctx, BasketKey, []byte(tt.raw)))

			d, err := Load(ctx, s, BasketKey)
			assert.Equal(t, Document{}, d)
			var pe *PersistenceError
			require.True(t, errors.As(err, &pe), "want PersistenceError, got %v", err)
			assert.Equal(t, BasketKey, pe.Key)
		})
	}
}

type failingStorage struct{}

func (failingStorage) GetItem(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk gone")
}

func (failingStorage) SetItem(context.Context, string, []byte) error {
	return errors.New("disk gone")
}

func TestLoadAndSave_StorageFailures(t *testing.T) {
	ctx := context.Background()
	_, err := Load(ctx, failingStorage{}, BasketKey)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)

	err = Save(ctx, failingStorage{}, BasketKey, Document{BasketID: "b1"})
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestNilStorageIsNoop(t *testing.T) {
	d, err := Load(context.Background(), nil, BasketKey)
	require.NoError(t, err)
	assert.Equal(t, Document{}, d)
	require.NoError(t, Save(context.Background(), nil, BasketKey, Document{BasketID: "x"}))
}

func TestSQLiteStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "shopsync.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)

	_, ok, err := s.GetItem(ctx, BasketKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Save(ctx, s, BasketKey, Document{BasketID: "b1", TotalItems: 2}))
	require.NoError(t, Save(ctx, s, BasketKey, Document{BasketID: "b1", TotalItems: 3}))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	d, err := Load(ctx, reopened, BasketKey)
	require.NoError(t, err)
	assert.Equal(t, Document{BasketID: "b1", TotalItems: 3}, d)
}

func TestMemoryStorage_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	v := []byte("abc")
	require.NoError(t, s.SetItem(ctx, "k", v))
	v[0] = 'z'

	got, ok, err := s.GetItem(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestMemoryStorage_ZeroValue(t *testing.T) {
	var m MemoryStorage
	ctx := context.Background()

	_, ok, err := m.GetItem(ctx, BasketKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetItem(ctx, BasketKey, []byte(`{"basketId":"b1","totalItems":0}`)))
	raw, ok, err := m.GetItem(ctx, BasketKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"basketId":"b1","totalItems":0}`, string(raw))
}
