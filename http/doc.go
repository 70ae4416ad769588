// Package http provides the JSON API of the s3manager server.
//
// Every route under /api requires an "Authorization: Bearer" token checked by
// an auth.Verifier. The verified subject is the only source of the caller's
// user id; request bodies, query strings and other headers are never consulted.
//
// # Routes
//
//	GET    /api/config          bucket, region and access key of the caller
//	GET    /api/user-config     safe view of the stored configuration
//	POST   /api/user-config     save the configuration
//	DELETE /api/user-config     delete the configuration
//	GET    /api/objects         list one folder level (?prefix=)
//	POST   /api/objects         {"action":"getContent","key":...}
//	POST   /api/create-folder   create a zero-length folder marker
//	DELETE /api/delete          delete one object
//	POST   /api/presigned-url   presigned PUT, or GET with "operation":"getObject"
//	GET    /healthz             liveness
//	GET    /readyz              datastore ping
//	GET    /metrics             Prometheus exposition
//
// # Errors
//
// Failures are written as {"error": code, "message": text}. HandleError maps
// the sentinel errors of the s3manager package to status codes. A datastore
// outage is answered with 503 and code "store_unavailable" so clients can
// switch to their local fallback; a missing configuration never is.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Verifier:     verifier,
//	    MaxBodyBytes: 1 << 20,
//	}
//	handler := http.NewHandler(&handlerCfg, store, gateway, broker)
//	http.ListenAndServe(":8080", handler.Router())
package http
