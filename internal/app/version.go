package app

// Version is overridden at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "1.0.0"
