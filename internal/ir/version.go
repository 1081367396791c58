package ir

// Version is the fbsql release, reported by `fbsql --version`.
const Version = "0.1.0"
