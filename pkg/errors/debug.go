package errors

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrorDump is a flattened view of an error for verbose output.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`

	Chain []string `json:"chain,omitempty"`

	// Set when a Sheets API response is somewhere in the chain.
	APIStatus  int    `json:"api_status,omitempty"`
	APIReason  string `json:"api_reason,omitempty"`
	APIMessage string `json:"api_message,omitempty"`
}

// Dump walks err's Unwrap chain.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
		d.Retryable = MetadataFor(d.Code).Retryable
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		d.APIStatus = apiErr.Code
		d.APIMessage = apiErr.Message
		for _, item := range apiErr.Errors {
			if item.Reason != "" {
				d.APIReason = item.Reason
				break
			}
		}
	}
	return d
}
