// Package weberr builds errors that know how to answer an HTTP request.
// Handlers return plain errors; the ones constructed here additionally
// carry a response body and status (and optionally extra log fields) that
// the Errors middleware unwraps. Anything else gets a generic 500.
package weberr

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}
