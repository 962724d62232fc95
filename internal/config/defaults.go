package config

import (
	"time"
)

func Defaults() *Config {

	return &Config{
		Sink: SinkMQTT,

		Sensors: SensorsConfig{
			Temp: SensorGroup{Interval: 30 * time.Second},
			Net:  SensorGroup{Interval: 5 * time.Second},
		},

		MQTT: MQTTConfig{
			KeepAlive:      30 * time.Second,
			ConnectTimeout: 10 * time.Second,
			PublishTimeout: 10 * time.Second,
		},

		Kafka: KafkaConfig{
			Topic: "sysmon.readings",
		},

		Log: LogConfig{
			Level:      "info",
			Encoding:   "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},

		Monitor: MonitorConfig{
			Interval:    30 * time.Second,
			StaleFactor: 3,
		},
	}
}
