// Package domain holds the value types that move through the ingest
// pipeline and the clock used to resolve bulletin times.
//
// # Data Source
//
// Bulletins arrive on the Kafka source topic one per message, exactly as
// they came off the NOAAPort or LDM feed: a WMO abbreviated heading
// ("WFUS53 KDMX 240212"), an optional AFOS line, and free text. Messages
// whose value starts with the four bytes "NLDN" carry a binary lightning
// stream instead.
//
// # Time Resolution
//
// WMO headings give only day, hour and minute. The month and year are
// taken from the message timestamp when the producer set one, otherwise
// from [Now], and the closest candidate month wins.
//
// # Outputs
//
// A [ProcessedProduct] carries the records to persist and the
// notifications to publish. Notifications leave the service as
// [OutputEvent] values on Kafka, NATS and MQTT.
package domain
