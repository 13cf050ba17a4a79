package http

// Filter hooks into every exchange. Client.Send calls BeforeSend on each
// filter in registration order once the request is fully resolved, and
// AfterReceive on each filter in the same registration order once the
// response is complete. Returning nil keeps the value unchanged.
//
// Filters are for side effects such as logging and timing. They must not
// change the meaning of the payload.
type Filter interface {
	BeforeSend(req *Request) *Request
	AfterReceive(resp *Response) *Response
}

// FilterFuncs adapts plain functions to Filter. Either function may be nil.
type FilterFuncs struct {
	Before func(req *Request) *Request
	After  func(resp *Response) *Response
}

func (f FilterFuncs) BeforeSend(req *Request) *Request {
	if f.Before == nil {
		return req
	}
	return f.Before(req)
}

func (f FilterFuncs) AfterReceive(resp *Response) *Response {
	if f.After == nil {
		return resp
	}
	return f.After(resp)
}

func runBeforeSend(filters []Filter, req *Request) *Request {
	for _, f := range filters {
		if next := f.BeforeSend(req); next != nil {
			req = next
		}
	}
	return req
}

func runAfterReceive(filters []Filter, resp *Response) *Response {
	for _, f := range filters {
		if next := f.AfterReceive(resp); next != nil {
			resp = next
		}
	}
	return resp
}
