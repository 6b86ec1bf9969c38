package error

// GenericError is implemented by every typed error in this package so the
// REST recovery middleware and the MCP handlers can map errors to a stable
// code and HTTP status.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
