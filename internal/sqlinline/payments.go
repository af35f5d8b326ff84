package sqlinline

// Column order shared by statements returning a payment row:
// id, order_id, user_id, user_email, plan, amount, currency, status, payment_url,
// gateway_transaction_id, gateway_document_number, webhook_data, created_at, completed_at

const QInsertPendingPayment = `--sql 4063b547-733c-4ea3-9643-3477da49d4b6
insert into payments (id, order_id, user_id, user_email, plan, amount, currency, status, payment_url, created_at)
values ($1::uuid, $2::text, $3::text, nullif($4::text, ''), $5::text, $6::numeric, $7::text, 'pending', nullif($8::text, ''), now())
on conflict (order_id) do nothing;
`

const QCompletePayment = `--sql 3e471629-7e21-4267-8262-232b1d630656
insert into payments (id, order_id, user_id, plan, amount, currency, status,
                      gateway_transaction_id, gateway_document_number, webhook_data, created_at, completed_at)
values ($1::uuid, $2::text, $3::text, 'premium', $4::numeric, $5::text, 'completed',
        nullif($6::text, ''), nullif($7::text, ''), $8::jsonb, now(), now())
on conflict (order_id) do update set
    status = 'completed',
    completed_at = coalesce(payments.completed_at, now()),
    gateway_transaction_id = coalesce(excluded.gateway_transaction_id, payments.gateway_transaction_id),
    gateway_document_number = coalesce(excluded.gateway_document_number, payments.gateway_document_number),
    webhook_data = excluded.webhook_data
returning id::text, order_id, user_id, coalesce(user_email, ''), plan, amount::float8, currency, status,
          coalesce(payment_url, ''), coalesce(gateway_transaction_id, ''), coalesce(gateway_document_number, ''),
          coalesce(webhook_data, '{}'::jsonb), created_at, completed_at;
`

const QSelectPaymentByOrderID = `--sql 8ff05cec-7149-4380-8ff0-4fed6c2821b5
select id::text, order_id, user_id, coalesce(user_email, ''), plan, amount::float8, currency, status,
       coalesce(payment_url, ''), coalesce(gateway_transaction_id, ''), coalesce(gateway_document_number, ''),
       coalesce(webhook_data, '{}'::jsonb), created_at, completed_at
from payments
where order_id = $1::text
limit 1;
`
