package cli

import (
	"encoding/json"
	"errors"
	"io"

	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Response is the JSON envelope every command prints.
type Response struct {
	Status      string     `json:"status"`
	Data        any        `json:"data,omitempty"`
	Error       *ErrorBody `json:"error,omitempty"`
	OperationID string     `json:"operation_id,omitempty"`
}

// ErrorBody is the error half of a Response.
type ErrorBody struct {
	Code    pkgerrors.Code       `json:"code"`
	Message string               `json:"message"`
	Details any                  `json:"details,omitempty"`
	Debug   *pkgerrors.ErrorDump `json:"debug,omitempty"`
}

// ExitError carries the process exit code for a failed command. The error
// itself has already been printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).ExitCode
}

func (o *RootOptions) succeed(cmd *cobra.Command, data any) error {
	return o.write(cmd.OutOrStdout(), Response{
		Status:      statusOK,
		Data:        data,
		OperationID: o.OperationID,
	})
}

// fail prints err as a JSON error response and returns an ExitError.
func (o *RootOptions) fail(cmd *cobra.Command, err error) error {
	code := pkgerrors.CodeOf(err)
	meta := pkgerrors.MetadataFor(code)

	body := &ErrorBody{Code: code, Message: err.Error()}
	if typed := pkgerrors.As(err); typed != nil {
		body.Message = typed.Message()
		if meta.DetailsAllowed {
			body.Details = typed.Details()
		}
	}
	if o.Verbose {
		dump := pkgerrors.Dump(err)
		body.Debug = &dump
	}

	if o.app != nil && o.app.Logger != nil {
		o.app.Logger.Error(cmd.Context(), "command failed", err)
	}
	if werr := o.write(cmd.OutOrStdout(), Response{
		Status:      statusError,
		Error:       body,
		OperationID: o.OperationID,
	}); werr != nil {
		return werr
	}
	return &ExitError{Code: meta.ExitCode, Err: err}
}

func (o *RootOptions) write(w io.Writer, resp Response) error {
	enc := json.NewEncoder(w)
	if o.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}

// respond prints data on success and the error otherwise.
func (o *RootOptions) respond(cmd *cobra.Command, data any, err error) error {
	if err != nil {
		return o.fail(cmd, err)
	}
	return o.succeed(cmd, data)
}
