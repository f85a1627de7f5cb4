package mock

import (
	"sort"
	"sync"
	"time"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

// Store is an in-memory stand-in for the SQLite repositories, used by
// service and controller tests. It mirrors the relational semantics the
// schema provides: cascade deletes and set-null references.
type Store struct {
	mutex sync.RWMutex

	users      map[int]*models.User
	categories map[int]*models.Category
	locations  map[int]*models.Location
	posts      map[int]*models.Post
	comments   map[int]*models.Comment

	nextUserID     int
	nextCategoryID int
	nextLocationID int
	nextPostID     int
	nextCommentID  int
}

func NewStore() *Store {
	return &Store{
		users:          make(map[int]*models.User),
		categories:     make(map[int]*models.Category),
		locations:      make(map[int]*models.Location),
		posts:          make(map[int]*models.Post),
		comments:       make(map[int]*models.Comment),
		nextUserID:     1,
		nextCategoryID: 1,
		nextLocationID: 1,
		nextPostID:     1,
		nextCommentID:  1,
	}
}

func (s *Store) Users() repositories.UserRepository { return (*userRepo)(s) }

func (s *Store) Categories() repositories.CategoryRepository { return (*categoryRepo)(s) }

func (s *Store) Locations() repositories.LocationRepository { return (*locationRepo)(s) }

func (s *Store) Posts() repositories.PostRepository { return (*postRepo)(s) }

func (s *Store) Comments() repositories.CommentRepository { return (*commentRepo)(s) }

// User repository

type userRepo Store

func (m *userRepo) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	user.BeforeCreate()
	user.ID = m.nextUserID
	m.nextUserID++
	m.users[user.ID] = user
	return nil
}

func (m *userRepo) GetByID(id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (m *userRepo) GetByUsername(username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *userRepo) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return repositories.ErrNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *userRepo) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.users[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.users, id)
	// Cascade: posts and comments by the user go too.
	for pid, post := range m.posts {
		if post.AuthorID == id {
			delete(m.posts, pid)
			for cid, c := range m.comments {
				if c.PostID == pid {
					delete(m.comments, cid)
				}
			}
		}
	}
	for cid, c := range m.comments {
		if c.AuthorID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

// Category repository

type categoryRepo Store

func (m *categoryRepo) Create(category *models.Category) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, c := range m.categories {
		if c.Slug == category.Slug {
			return repositories.ErrConflict
		}
	}
	category.BeforeCreate()
	category.ID = m.nextCategoryID
	m.nextCategoryID++
	m.categories[category.ID] = category
	return nil
}

func (m *categoryRepo) GetByID(id int) (*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	category, exists := m.categories[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return category, nil
}

func (m *categoryRepo) GetBySlug(slug string) (*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, category := range m.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *categoryRepo) List() ([]*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var categories []*models.Category
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Title < categories[j].Title })
	return categories, nil
}

func (m *categoryRepo) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.categories[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.categories, id)
	// Set-null: posts keep existing without the category.
	for _, post := range m.posts {
		if post.CategoryID != nil && *post.CategoryID == id {
			post.CategoryID = nil
			post.Category = nil
		}
	}
	return nil
}

// Location repository

type locationRepo Store

func (m *locationRepo) Create(location *models.Location) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	location.BeforeCreate()
	location.ID = m.nextLocationID
	m.nextLocationID++
	m.locations[location.ID] = location
	return nil
}

func (m *locationRepo) GetByID(id int) (*models.Location, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	location, exists := m.locations[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return location, nil
}

func (m *locationRepo) List() ([]*models.Location, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var locations []*models.Location
	for _, l := range m.locations {
		locations = append(locations, l)
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Name < locations[j].Name })
	return locations, nil
}

func (m *locationRepo) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.locations[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.locations, id)
	for _, post := range m.posts {
		if post.LocationID != nil && *post.LocationID == id {
			post.LocationID = nil
			post.Location = nil
		}
	}
	return nil
}

// Post repository

type postRepo Store

func (m *postRepo) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.BeforeCreate()
	post.ID = m.nextPostID
	m.nextPostID++
	m.posts[post.ID] = post
	return nil
}

func (m *postRepo) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return m.annotate(post), nil
}

func (m *postRepo) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt
	m.posts[post.ID] = post
	return nil
}

func (m *postRepo) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	return nil
}

func (m *postRepo) ListPublished(now time.Time, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return paginate(m.visible(now, 0), limit, offset), nil
}

func (m *postRepo) CountPublished(now time.Time) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.visible(now, 0)), nil
}

func (m *postRepo) ListByCategory(categoryID int, now time.Time, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return paginate(m.visible(now, categoryID), limit, offset), nil
}

func (m *postRepo) CountByCategory(categoryID int, now time.Time) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.visible(now, categoryID)), nil
}

func (m *postRepo) ListByAuthor(authorID int, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var posts []*models.Post
	for _, post := range m.posts {
		if post.AuthorID == authorID {
			posts = append(posts, m.annotate(post))
		}
	}
	sortByPubDateDesc(posts)
	return paginate(posts, limit, offset), nil
}

func (m *postRepo) CountByAuthor(authorID int) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := 0
	for _, post := range m.posts {
		if post.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// visible collects publicly visible posts, optionally restricted to a
// category, sorted pub_date descending. Callers hold the lock.
func (m *postRepo) visible(now time.Time, categoryID int) []*models.Post {
	var posts []*models.Post
	for _, post := range m.posts {
		annotated := m.annotate(post)
		if !annotated.VisibleAt(now) {
			continue
		}
		if categoryID != 0 && (post.CategoryID == nil || *post.CategoryID != categoryID) {
			continue
		}
		posts = append(posts, annotated)
	}
	sortByPubDateDesc(posts)
	return posts
}

// annotate fills the read-side fields the SQL projection would join in.
func (m *postRepo) annotate(post *models.Post) *models.Post {
	annotated := *post
	annotated.Author = m.users[post.AuthorID]
	if post.CategoryID != nil {
		annotated.Category = m.categories[*post.CategoryID]
	}
	if post.LocationID != nil {
		annotated.Location = m.locations[*post.LocationID]
	}
	annotated.CommentCount = 0
	for _, c := range m.comments {
		if c.PostID == post.ID {
			annotated.CommentCount++
		}
	}
	return &annotated
}

func sortByPubDateDesc(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].PubDate.Equal(posts[j].PubDate) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].PubDate.After(posts[j].PubDate)
	})
}

func paginate(posts []*models.Post, limit, offset int) []*models.Post {
	if offset >= len(posts) {
		return []*models.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

// Comment repository

type commentRepo Store

func (m *commentRepo) Create(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.BeforeCreate()
	comment.ID = m.nextCommentID
	m.nextCommentID++
	m.comments[comment.ID] = comment
	return nil
}

func (m *commentRepo) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	annotated := *comment
	annotated.Author = m.users[comment.AuthorID]
	return &annotated, nil
}

func (m *commentRepo) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.comments[comment.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	existing.Text = comment.Text
	return nil
}

func (m *commentRepo) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *commentRepo) ListByPost(postID int) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var comments []*models.Comment
	for _, comment := range m.comments {
		if comment.PostID == postID {
			annotated := *comment
			annotated.Author = m.users[comment.AuthorID]
			comments = append(comments, &annotated)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (m *commentRepo) CountByPost(postID int) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}
