package logger

// Helper functions for common log operations

func Auth(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryAuth, action, message, nil, data)
}

func AuthError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryAuth, action, message, err, data)
}

func AuthWarn(action, message string, data map[string]interface{}) {
	Default().Log(LevelWarn, CategoryAuth, action, message, nil, data)
}

func WebSocket(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryWebSocket, action, message, nil, data)
}

func WebSocketError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryWebSocket, action, message, err, data)
}

func API(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryAPI, action, message, nil, data)
}

func DB(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryDB, action, message, nil, data)
}

// Face logs calls to the face embedding service
func Face(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryFace, action, message, nil, data)
}

func FaceError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryFace, action, message, err, data)
}

// Match logs matching batch progress
func Match(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryMatch, action, message, nil, data)
}

func MatchWarn(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelWarn, CategoryMatch, action, message, err, data)
}

func MatchError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryMatch, action, message, err, data)
}

func Ingest(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryIngest, action, message, nil, data)
}

func IngestWarn(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelWarn, CategoryIngest, action, message, err, data)
}

func Storage(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryStorage, action, message, nil, data)
}

func StorageError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryStorage, action, message, err, data)
}

func Scheduler(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryScheduler, action, message, nil, data)
}

func SchedulerWarn(action, message string, data map[string]interface{}) {
	Default().Log(LevelWarn, CategoryScheduler, action, message, nil, data)
}

func SchedulerError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryScheduler, action, message, err, data)
}

func Startup(action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, CategoryStartup, action, message, nil, data)
}

func StartupError(action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, CategoryStartup, action, message, err, data)
}

func StartupWarn(action, message string, data map[string]interface{}) {
	Default().Log(LevelWarn, CategoryStartup, action, message, nil, data)
}

// Generic helpers with explicit category

func Info(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LevelInfo, category, action, message, nil, data)
}

func Error(category Category, action, message string, err error, data map[string]interface{}) {
	Default().Log(LevelError, category, action, message, err, data)
}

func Debug(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LevelDebug, category, action, message, nil, data)
}

func Warn(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LevelWarn, category, action, message, nil, data)
}
