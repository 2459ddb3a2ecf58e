// Package cmd implements the command-line interface for simlink. It provides
// a hierarchical command structure for inspecting stations, driving robots
// and running the stub station server.
//
// The package is organized into several subpackages:
//
//   - station: Commands for station-level operations (items, parameters, save/load, etc.)
//   - robot: Commands for driving a robot (joints, moves, programs, perf)
//   - mock: Command for running the built-in stub station server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See simlink -help for a list of all commands.
package cmd
