package version

const Version = "1.2.0"
