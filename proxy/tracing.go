package proxy

const (
	ErrorTag          = "error"
	FlowIDTag         = "flow_id"
	HTTPMethodTag     = "http.method"
	HTTPPathTag       = "http.path"
	HTTPStatusCodeTag = "http.status_code"
	ContentIDTag      = "storefront.content_id"
	MatchTag          = "storefront.match"
	RegistrationTag   = "storefront.registration"

	resolveSpanName = "resolve"
	tracerName      = "github.com/zalando/storefront/proxy"
)
