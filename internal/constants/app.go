package constants

const (
	APP_CART_SERVICE    = "cart-service"
	APP_MAIN_STOREFRONT = "main storefront"
	AUDIENCE_CUSTOMER   = "audience-customer"
)
