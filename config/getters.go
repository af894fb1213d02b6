package config

// GetName returns the application name
func (a *AppConfig) GetName() string {
	return a.Name
}

// GetDebug returns the debug flag
func (a *AppConfig) GetDebug() bool {
	return a.Debug
}

// GetServer returns the server section
func (a *AppConfig) GetServer() Server {
	return a.Server
}

// GetAuth returns the auth section
func (a *AppConfig) GetAuth() Auth {
	return a.Auth
}

// GetPersistence returns the persistence section
func (a *AppConfig) GetPersistence() Persistence {
	return a.Persistence
}

// GetAddress returns the listen address
func (s Server) GetAddress() string {
	return s.Address
}

// GetSigningKey returns the HMAC signing key
func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

// GetTokenExpiration returns the session token TTL in hours
func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration <= 0 {
		return 1
	}
	return a.TokenExpiration
}

// GetIssuer returns the token issuer
func (a Auth) GetIssuer() string {
	return a.Issuer
}

// GetAudience returns the accepted audiences
func (a Auth) GetAudience() []string {
	return a.Audience
}

// GetContextKey returns the router locals key for the principal
func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

// GetDriver returns the database driver name
func (p Persistence) GetDriver() string {
	return p.Driver
}

// GetDSN returns the connection string
func (p Persistence) GetDSN() string {
	return p.DSN
}

// GetServer returns the database host
func (p Persistence) GetServer() string {
	return p.Server
}

// GetDatabase returns the database name
func (p Persistence) GetDatabase() string {
	return p.Database
}

// GetUsername returns the database user
func (p Persistence) GetUsername() string {
	return p.Username
}

// GetPassword returns the database password
func (p Persistence) GetPassword() string {
	return p.Password
}

// GetSSLMode returns the ssl mode
func (p Persistence) GetSSLMode() string {
	return p.SSLMode
}

// GetDebug returns the persistence debug flag
func (p Persistence) GetDebug() bool {
	return p.Debug
}

// GetOtelIdentifier returns the OpenTelemetry identifier; empty disables the hook
func (p Persistence) GetOtelIdentifier() string {
	return ""
}
