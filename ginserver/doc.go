// Package ginserver provides Cloudflare Turnstile verification middleware
// for the Gin web framework.
//
// It mirrors the httpserver package with gin-native ergonomics: rejections
// are JSON bodies, the verified marker lives in the gin context, and
// RequireVerified is a chainable gin.HandlerFunc.
//
// # Quick Start
//
//	cfg := verifier.New(os.Getenv("TURNSTILE_SECRET"))
//
//	gate, err := ginserver.Middleware(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	router := gin.Default()
//	router.POST("/api/submit", gate, ginserver.RequireVerified(), submitHandler)
//	router.Run(":8080")
package ginserver
