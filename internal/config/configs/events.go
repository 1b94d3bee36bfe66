package configs

// Events configures where committed ledger events are published. Events
// are always logged; with brokers configured they are also written to
// Kafka.
type Events struct {
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string   `env:"TOPIC" envDefault:"reward-ledger.events"`
}
