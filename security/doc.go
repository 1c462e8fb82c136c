// Package security builds client TLS settings for the channel backends.
//
// Kafka and Redis connections share one TLSConfig shape so a task file
// configures certificates the same way for either backend:
//
//	tls:
//	  enabled: true
//	  ca_file: /etc/dataflow/ca.pem
//	  cert_file: /etc/dataflow/client.pem
//	  key_file: /etc/dataflow/client-key.pem
package security
