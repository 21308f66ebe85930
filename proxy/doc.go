/*
Package proxy implements the HTTP front of the storefront.

The handler resolves the path of each GET or HEAD request against the
current routing generation. Literal registrations win over wildcard
ones, and among the accepting wildcard registrations the most specific
one wins. When no registration accepts the path, the default
registration of the generation is used, if there is one. Otherwise the
handler responds with the configured default status, 404 unless set.

The content of the resolved registration is taken from the content
store, and returned together with the routing details:

	{
	  "path": "/shop/sale/jackets",
	  "registration": "/shop/sale/*",
	  "contentId": "3",
	  "match": "wildcard",
	  "content": {"id": "3", "title": "Sale"}
	}

Content that the backend doesn't know results in 404, other content
errors in 502.

Every request gets a flow id. An incoming X-Flow-Id header is kept,
otherwise a new one is generated. The flow id is set on the response,
and on the span that traces the request.

The support handler serves the metrics, a dump of the current routing
generation at /routes, and a health check at /healthz that fails until
every registration source was loaded once.
*/
package proxy
