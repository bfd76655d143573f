package auth

// Identity represents a verified principal as issued by an identity
// provider. It contains facts only, no decisions, and is never mutated
// after a provider returns it; the session layer stores and retrieves
// it as an opaque value.
type Identity struct {
	Provider string `json:"provider"` // e.g. "google", "github", "local"
	Subject  string `json:"subject"`  // provider-scoped unique user identifier
	Email    string `json:"email"`    // email asserted by the provider
	Name     string `json:"name"`     // display name, may be empty
}
