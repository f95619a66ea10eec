package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/sorteos-app/sorteos-api/cmd/app"
)

// @title           Sorteos API
// @description     Raffle ticket sales with bank-transfer style payments verified by hand.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
