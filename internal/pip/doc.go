// Package pip drives the pip installer inside a virtual environment:
// installing requirement files and individual packages, listing what is
// installed, and checking installed versions against requirements.
package pip
