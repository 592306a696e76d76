package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/homeloto/retail-api/cmd/app"
)

// @title           HOMELOTO retail API
// @version         1.0
// @description     Point-of-sale backend for the HOMELOTO 7/49 lottery.
// @BasePath        /api/v1
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
