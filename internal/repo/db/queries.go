package db

const accountGetCredits = `
SELECT credits
FROM accounts
WHERE nickname = ?
`

const accountGetItems = `
SELECT item_id
FROM account_items
WHERE nickname = ?
ORDER BY item_id
`

const accountCreate = `
INSERT INTO accounts (nickname, credits)
VALUES (?, ?)
ON CONFLICT (nickname) DO NOTHING
`

const accountAdjustCredits = `
UPDATE accounts
SET credits = credits + ?
WHERE nickname = ?
`

const accountDebit = `
UPDATE accounts
SET credits = credits - ?1
WHERE nickname = ?2 AND credits >= ?1
`

const itemOwned = `
SELECT 1
FROM account_items
WHERE nickname = ? AND item_id = ?
`

const itemAdd = `
INSERT INTO account_items (nickname, item_id)
VALUES (?, ?)
ON CONFLICT (nickname, item_id) DO NOTHING
`

const itemRemove = `
DELETE FROM account_items
WHERE nickname = ? AND item_id = ?
`
