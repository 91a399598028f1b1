// Package events provides chain event subscriptions over websocket: a raw
// frame query client which fans each query's frames out to observers, and a
// typed events client which decodes frames into chain events, reconnects
// with backoff when the transport drops, and marks delivery gaps in-band so
// consumers never mistake a reconnect for a gapless stream.
package events
