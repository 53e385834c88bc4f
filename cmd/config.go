package main

import "time"

type Config struct {
	BufferSize                int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	ModerationCharReplacement rune          `env:"MODERATION_CHARACTER_REPLACEMENT,required=true"`
	LimitMessages             *int          `env:"LIMIT_MESSAGES"`
	TimelineCapacity          int           `env:"TIMELINE_CAPACITY,default=100"`
	PersistTimeout            time.Duration `env:"PERSIST_TIMEOUT,required=true"`
	SinkTimeout               time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,required=true"`
	HeartbeatInterval         time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	TokenDuration             time.Duration `env:"TOKEN_DURATION,default=24h"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	SearchIndexPath           string        `env:"SEARCH_INDEX_PATH,required=true"`
	SearchLimit               int           `env:"SEARCH_LIMIT,default=20"`
	AssetDirectory            string        `env:"ASSET_DIRECTORY,required=true"`
	AssetBaseURL              string        `env:"ASSET_BASE_URL,default=/assets"`
	AssetMaxSize              int64         `env:"ASSET_MAX_SIZE,default=10485760"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	DebugPort                 int           `env:"DEBUG_PORT"` // 0 disables the inspect surface
}
