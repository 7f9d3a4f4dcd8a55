// Package drive is a thin read-only adapter over the Google Drive API. It
// lists the attachment-candidate folder for the matcher and resolves
// direct-download links for matched files. Uploads, sharing, and folder
// management are out of scope.
package drive
