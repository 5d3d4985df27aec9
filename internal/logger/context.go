package logger

// Component-specific logger functions

// DB returns a logger for connection and schema operations
func DB() Logger {
	return WithField("component", "db")
}

// ORM returns a logger for statements issued by the mapping core
func ORM() Logger {
	return WithField("component", "orm")
}

// Store returns a logger for inventory store operations
func Store() Logger {
	return WithField("component", "store")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// Config returns a logger for configuration loading
func Config() Logger {
	return WithField("component", "config")
}
