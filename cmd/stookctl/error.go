package main

import (
	"errors"
)

// usageError is an error that stookctl answers by printing the
// command's usage as well.
type usageError struct {
	error
}

func newUsageError(msg string) usageError {
	return usageError{error: errors.New(msg)}
}

var (
	errorWantedNoArgs        = newUsageError("this command takes no arguments, only flags")
	errorInvalidOutputFormat = newUsageError("unknown --output-format; use one of table, yaml, json")
	errorWantedRepositories  = newUsageError("name at least one repository to notify stookd about, e.g., stookctl notify org/app")
	errorWantedOneStack      = newUsageError("name exactly one Portainer stack to redeploy, e.g., stookctl redeploy mystack")
)
