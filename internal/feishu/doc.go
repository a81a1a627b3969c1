// Package feishu is the transport layer for the Feishu (Lark) open platform.
//
// It owns the HTTP client, the tenant_access_token lifecycle and the response
// envelope shared by every open API endpoint:
//
//	{"code": 0, "msg": "success", "data": {...}}
//
// A non-zero code is returned as an *APIError carrying the remote code and
// message. Domain packages (tasks, contact, im) build on Client and never
// see raw HTTP.
//
// Tenant tokens are obtained with app credentials through
// /open-apis/auth/v3/tenant_access_token/internal and cached until shortly
// before expiry by an oauth2.ReuseTokenSource.
package feishu
