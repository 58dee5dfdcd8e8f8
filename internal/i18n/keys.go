// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthInvalidRole        = "auth.invalid_role"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyRoleAccessDenied       = "auth.role_access_denied"

	// Users / wallet
	KeyUserNotFound       = "user.not_found"
	KeyWalletInsufficient = "wallet.insufficient_funds"
	KeyWalletTopUpCreated = "wallet.topup_created"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductNotFound = "product.not_found"
	KeyProductNotOwned = "product.not_owned"

	// Batches
	KeyBatchCreated           = "batch.created"
	KeyBatchNotFound          = "batch.not_found"
	KeyBatchNotOwned          = "batch.not_owned"
	KeyBatchSplit             = "batch.split"
	KeyBatchPurchased         = "batch.purchased"
	KeyBatchShipped           = "batch.shipped"
	KeyBatchDelivered         = "batch.delivered"
	KeyBatchSold              = "batch.sold"
	KeyBatchWrongStatus       = "batch.wrong_status"
	KeyBatchQuantityExceeded  = "batch.quantity_exceeded"
	KeyBatchQuantityExhausted = "batch.quantity_exhausted"

	// Events
	KeyEventLogged     = "event.logged"
	KeyEventNotFound   = "event.not_found"
	KeyAttachmentAdded = "event.attachment_added"
	KeyDeviceDataAdded = "event.device_data_added"

	// Orders
	KeyOrderCreated   = "order.created"
	KeyOrderNotFound  = "order.not_found"
	KeyOrderForbidden = "order.forbidden"

	// Traceability
	KeyTraceRetrieved = "trace.retrieved"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// Files
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
)
