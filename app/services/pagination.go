package services

import "pressroom/app/models"

// PostsPerPage is the fixed page size for every post listing.
const PostsPerPage = 10

// PostPage is one page of a post listing.
type PostPage struct {
	Posts   []*models.Post
	Number  int
	PerPage int
	Total   int
}

func (p *PostPage) TotalPages() int {
	if p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p *PostPage) HasPrev() bool { return p.Number > 1 }
func (p *PostPage) HasNext() bool { return p.Number < p.TotalPages() }
func (p *PostPage) PrevNumber() int {
	return p.Number - 1
}
func (p *PostPage) NextNumber() int {
	return p.Number + 1
}

// clampPage normalizes a requested page number; anything below 1 means
// page 1. Pages past the end stay as requested and come back empty.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
