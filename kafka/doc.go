// Package kafka provides the Kafka producer behind sorted exchange channels.
//
// A Producer wraps a kafka-go Writer configured for hash partitioning, so
// records with equal keys reach the same partition and therefore the same
// downstream consumer. Transient broker failures are retried with exponential
// backoff. TLS and SASL are configured from Config.
//
//	kafka:
//	  brokers: ["localhost:9092"]
//	  topic: "dataflow.shuffle"
//	  compression: "snappy"
package kafka
