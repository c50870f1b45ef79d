package config

import (
	sinkkafka "splice/sink/kafka"
	kcfg "splice/source/kafka"
)

// LoadKafkaConfig delegates to the Kafka source loader while centralizing
// loader entrypoints under internal/config.
func LoadKafkaConfig(path string) (kcfg.Config, error) {
	return kcfg.LoadConfig(path)
}

// LoadKafkaSinkConfig does the same for the Kafka sink.
func LoadKafkaSinkConfig(path string) (sinkkafka.Config, error) {
	return sinkkafka.LoadConfig(path)
}
