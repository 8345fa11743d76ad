package dberrors

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsDuplicateKeyError reports whether err is a unique index violation
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsDuplicateIndexError reports whether err is a unique violation of the named index
func IsDuplicateIndexError(err error, indexName string) bool {
	if !mongo.IsDuplicateKeyError(err) {
		return false
	}
	return strings.Contains(err.Error(), "index: "+indexName+" ")
}

// IsNotFound reports whether a single-document read matched nothing
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
