package error

import "net/http"

// StorageError marks local persistence failures (filesystem or metadata DB).
type StorageError string

func (err StorageError) Error() string {
	return string(err)
}

func (err StorageError) ErrCode() string {
	return "STORAGE_FAILURE"
}

func (err StorageError) StatusCode() int {
	return http.StatusInternalServerError
}
