// Command reelscout searches the Netzkino catalog and keeps a movie watchlist.
package main

func main() {
	Execute()
}
