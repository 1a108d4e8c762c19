// Package access holds the authorization rules for write operations.
// Each rule is a pure function of the caller and its target; a nil caller is anonymous.
// Reads never consult this package.
package access

import "github.com/library-api/internal/models"

// CanCreateArticle allows any authenticated caller
func CanCreateArticle(caller *models.Identity) bool {
	return caller != nil
}

// CanWriteArticle allows only the article's author to update or delete it
func CanWriteArticle(caller *models.Identity, article *models.Article) bool {
	return caller != nil && article != nil && article.IsAuthoredBy(caller.AuthorID)
}

// CanWriteTag allows only staff to create, rename or delete tags
func CanWriteTag(caller *models.Identity) bool {
	return caller != nil && caller.IsStaff
}

// CanRegister allows only anonymous callers to create an account
func CanRegister(caller *models.Identity) bool {
	return caller == nil
}

// CanWriteAuthor allows an author to manage only their own account
func CanWriteAuthor(caller *models.Identity, author *models.Author) bool {
	return caller != nil && author != nil && caller.AuthorID == author.ID
}
