// Package pipeline implements the markdown to HTML conversion stages:
// preprocessing, Goldmark conversion, post-processing of directive
// placeholders, and CSS/TOC injection into the final document.
package pipeline
