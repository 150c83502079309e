// Package logtail reads the tail of the shopsync log file for display in the
// TUI.
//
// # Reading Log Files
//
// Read keeps a ring buffer of the last maxLines lines, so the file is
// scanned once and memory stays O(maxLines) regardless of file size.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//	if err != nil {
//		return err
//	}
//	for _, rec := range logtail.ParseLines(lines) {
//		fmt.Println(rec.Level, rec.Message)
//	}
//
// # Parsing
//
// The log file is written by slog.TextHandler, one record per line:
//
//	time=2024-03-06T12:00:00.000Z level=WARN msg="basket cycle failed" component=basket op=refresh err="..."
//
// Parse extracts time, level and msg and keeps the remaining pairs in order.
// Lines that do not follow the key=value form are returned with Message set
// to the trimmed line, so a truncated or foreign line still displays.
package logtail
