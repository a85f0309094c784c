// Package message defines the message model for TabStreams.
//
// Messages are the unit of data flow through the mesh: a typed payload
// plus lifecycle metadata, serialized as JSON on the wire. Payload types
// register themselves with the component payload registry so that
// BaseMessage.UnmarshalJSON can recreate typed payloads from incoming
// bytes.
package message
