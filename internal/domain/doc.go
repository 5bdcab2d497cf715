// Package domain contains the core entities of the application: local
// users and the tasks they own. Entities are plain structs with
// validation methods; persistence lives in the store packages.
package domain
