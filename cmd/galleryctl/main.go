// Command galleryctl runs maintenance tasks against the gallery database.
package main

func main() {
	Execute()
}
