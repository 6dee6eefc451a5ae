package handler

// Client-facing messages. Error codes go in the envelope's data field; the
// underlying error text only reaches the server log.
const (
	msgUnauthorized      = "Unauthorized"
	msgInvalidBody       = "Invalid request body"
	msgLoginFailed       = "Failed to login"
	msgOrdersFailed      = "Failed to retrieve Orders"
	msgCustomersFailed   = "Failed to retrieve customer data"
	msgForecastFailed    = "Failed to retrieve sales forecast"
	msgChurnFailed       = "Failed to retrieve churn prediction"
	msgLoginSucceeded    = "Login successful"
	homeLivenessResponse = "Hello Api Alive!"

	codeInternal   = "internal_error"
	codeUpstream   = "upstream_error"
	codeValidation = "validation_error"
)
