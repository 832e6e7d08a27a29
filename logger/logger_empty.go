//go:build logless

package logger

// Log is a no-op sink with the same fluent surface as the zerolog-backed
// logger, so code using Log doesn't need a build-tagged branch of its own.
var Log = EmptyLog{}

type EmptyLog struct{}

func (l EmptyLog) Debug() EmptyLog { return l }
func (l EmptyLog) Error() EmptyLog { return l }
func (l EmptyLog) Warn() EmptyLog  { return l }
func (l EmptyLog) Info() EmptyLog  { return l }

func (l EmptyLog) Msg(string)         {}
func (l EmptyLog) Msgf(string, ...any) {}
func (l EmptyLog) Err(error) EmptyLog { return l }

func (l EmptyLog) Int(string, int) EmptyLog       { return l }
func (l EmptyLog) Str(string, string) EmptyLog    { return l }
func (l EmptyLog) Float32(string, float32) EmptyLog { return l }
func (l EmptyLog) Bool(string, bool) EmptyLog     { return l }
