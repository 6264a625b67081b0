package domain

// User is a profile document in the "users" collection. Only the
// fields the fan-out subsystem reads are mapped.
type User struct {
	UID            string `firestore:"uid"`
	UserName       string `firestore:"userName"`
	ProfilePicture string `firestore:"profilePicture"`
	FCMToken       string `firestore:"fcmToken"`
}
