package user

import "github.com/go-redis/redis/v9"

// KEYS: user key, id counter key.
// ARGV: email, display name, password hash.
// Returns the new user ID or 0 if the email is taken.
var createUserScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local id = redis.call('INCR', KEYS[2])
redis.call('HSET', KEYS[1],
	'id', id,
	'email', ARGV[1],
	'display_name', ARGV[2],
	'password_hash', ARGV[3],
	'reset_token', '',
	'reset_token_expiry', '',
	'version', 1)
return id
`)

// KEYS: user key.
// ARGV: expected version (an empty string skips the check), id, password hash,
// reset token, reset token expiry, token TTL in ms, token key prefix, email.
// Returns the new version, 0 if the user does not exist or -1 if the
// version changed since the user was read.
var saveUserScript = redis.NewScript(`
local id = redis.call('HGET', KEYS[1], 'id')
if not id or id ~= ARGV[2] then
	return 0
end
local version = redis.call('HGET', KEYS[1], 'version')
if ARGV[1] ~= '' and version ~= ARGV[1] then
	return -1
end
local old = redis.call('HGET', KEYS[1], 'reset_token')
if old and old ~= '' then
	redis.call('DEL', ARGV[7] .. old)
end
redis.call('HSET', KEYS[1],
	'password_hash', ARGV[3],
	'reset_token', ARGV[4],
	'reset_token_expiry', ARGV[5])
if ARGV[4] ~= '' then
	redis.call('SET', ARGV[7] .. ARGV[4], ARGV[8], 'PX', ARGV[6])
end
return redis.call('HINCRBY', KEYS[1], 'version', 1)
`)
