package model

type Post struct {
	Title      string
	Content    string
	Category   string
	Writer     string
	ImagePaths []string
}
