package main

import "taskmanager/internal/app"

// @title        Task Manager API
// @version      1.0
// @description  Task tracking with business rules and statistics.
// @BasePath     /
func main() {
	app.Run()
}
