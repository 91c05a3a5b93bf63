package error

// GenericError is implemented by every application error that knows how to
// present itself over the REST surface.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
