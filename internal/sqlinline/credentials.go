package sqlinline

const QSelectAppCredential = `--sql c49e4a15-318c-47df-8771-e4aeed0b58a2
select token
from app_credentials
where provider = $1::text
limit 1;
`

const QUpsertAppCredential = `--sql d12cbf3a-7bc4-4dfd-b01f-cbd02e42cd23
insert into app_credentials (provider, token, properties, created_at, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
