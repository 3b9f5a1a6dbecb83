// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package mdd

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// SchemaError reports a problem with a Schema or a Dimension declaration: an
// unknown dimension, a type mismatch, or an invalid bin config.
type SchemaError struct {
	Dimension string
	Value     string
	Op        string
	Err       error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("mdd: schema error during %s", e.Op)
	if e.Dimension != "" {
		msg += fmt.Sprintf(" (dimension %q)", e.Dimension)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", trim(e.Value))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// OrderingError reports a problem with a dimension permutation or with an
// OrderingConfig: a supplied order that is not a permutation of the schema
// names, an empty order, or a negative MaxEvals budget.
type OrderingError struct {
	Op  string
	Err error
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("mdd: ordering error during %s: %s", e.Op, e.Err)
}

func (e *OrderingError) Unwrap() error { return e.Err }

// CompileError reports a problem encountered while building an MDD from a
// table: a row inconsistent with the schema, or a numeric value that fails
// to parse.
type CompileError struct {
	Dimension string
	Value     string
	Row       int
	Err       error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("mdd: compile error at row %d", e.Row)
	if e.Dimension != "" {
		msg += fmt.Sprintf(" (dimension %q)", e.Dimension)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", trim(e.Value))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompileError) Unwrap() error { return e.Err }

// QueryError reports a problem with a query: a pattern that references an
// unknown dimension, or an incomplete specification passed to Exists.
type QueryError struct {
	Op        string
	Dimension string
	Err       error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("mdd: query error in %s", e.Op)
	if e.Dimension != "" {
		msg += fmt.Sprintf(" (dimension %q)", e.Dimension)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// trim shortens an offending value for inclusion in an error message so a
// pathologically long field never blows up a failure message.
func trim(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// appendIssue aggregates validation problems found while checking a schema
// or a batch of rows into one multierror, so a single returned error can
// report more than one problem instead of only the first one found.
func appendIssue(errs error, issue error) error {
	return multierror.Append(errs, issue)
}
