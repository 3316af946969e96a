// Package commands defines the santaverse CLI.
//
// Commands
//
//   - serve     Run the HTTP and websocket server
//   - chat      Talk to Santa in the terminal
//   - compose   Place the Santa overlay onto a photo
//   - gallery   List, like or share gallery items
//
// The root command loads configuration from the environment (and .env)
// before any subcommand runs.
package commands
