package authRepository

const (
	queryCreateUser = `
INSERT INTO users (id, username, email, password, created_at)
VALUES (:id, :username, :email, :password, :created_at)`

	queryGetById = `
SELECT id, username, email, password, created_at
FROM users
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, username, email, password, created_at
FROM users
    WHERE email = :email`
)
