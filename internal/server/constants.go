package server

// HeaderAPIKey is the authentication header checked on API routes
const HeaderAPIKey = "X-API-Key"
