package main

import "ascend/internal/app"

// @title           Ascend API
// @version         1.0
// @description     Climbing session log and training plan backend.
// @BasePath        /api
func main() {
	app.Run()
}
