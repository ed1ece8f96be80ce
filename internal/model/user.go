package model

// DefaultUserID is the implicit owner of all data in single-user deployments.
// Handlers honor an X-User-ID header override for multi-user experiments, but
// background jobs always operate on the default user.
const DefaultUserID = "1"
