package config

const (
	HCType        = "Content-Type"
	HCacheControl = "Cache-Control"
	HConnection   = "Connection"
	HOrigin       = "Access-Control-Allow-Origin"
	HAllowCreds   = "Access-Control-Allow-Credentials"
	HAllowMethods = "Access-Control-Allow-Methods"
	HAllowHeaders = "Access-Control-Allow-Headers"
	HXRequestID   = "X-Request-Id"
	HETag         = "ETag"
	HIfNoneMatch  = "If-None-Match"
	HVary         = "Vary"

	CTypeCSS         = "text/css"
	CTypeJSON        = "application/json"
	CTypeEventStream = "text/event-stream"
)

const (
	// FormFieldPackage is the multipart field carrying an uploaded post package.
	FormFieldPackage = "blogPackage"
)
