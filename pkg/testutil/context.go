package testutil

import (
	"net/http"

	id "licensio/pkg/domain"
	"licensio/pkg/requestcontext"
)

// AsCaller attaches an authenticated caller to the request, the way the auth
// middleware would for a real request.
func AsCaller(req *http.Request, caller id.Caller) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// AsAdmin attaches a fresh admin caller and returns it alongside the request.
func AsAdmin(req *http.Request) (*http.Request, id.Caller) {
	caller := id.Caller{UserID: id.NewUserID(), Role: id.RoleAdmin}
	return AsCaller(req, caller), caller
}

// AsCustomer attaches a fresh customer caller and returns it alongside the
// request.
func AsCustomer(req *http.Request) (*http.Request, id.Caller) {
	caller := id.Caller{UserID: id.NewUserID(), Role: id.RoleCustomer}
	return AsCaller(req, caller), caller
}
