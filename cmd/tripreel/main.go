// Command tripreel turns travel videos into day-by-day itineraries.
//
// It can print a single itinerary (plan), serve the web interface (serve),
// run as an MCP server (mcp) or stand in for the generation service with
// canned responses (fixture-backend).
package main

func main() {
	Execute()
}
