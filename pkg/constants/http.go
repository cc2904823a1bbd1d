// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// AcceptHeader is the header name for the accepted response media type
	AcceptHeader string = "Accept"

	// ContentTypeHeader is the header name for the request body media type
	ContentTypeHeader string = "Content-Type"

	// ZoomTrackingIDHeader identifies a request in Zoom support tickets
	ZoomTrackingIDHeader string = "x-zm-trackingid"

	// HubSpotCorrelationIDHeader identifies a request in HubSpot support tickets
	HubSpotCorrelationIDHeader string = "X-HubSpot-Correlation-Id"
)

// ContentTypeJSON is the media type of every request and response body.
const ContentTypeJSON = "application/json"

// TraceHeaders are the provider request identifiers worth logging.
var TraceHeaders = []string{ZoomTrackingIDHeader, HubSpotCorrelationIDHeader}
