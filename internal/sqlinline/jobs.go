package sqlinline

const QInsertJob = `--sql 7c2f4b1e-9a63-4f0d-8b21-5e9d0c3a7f14
insert into validation_jobs(id, created_at, status, progress, report_path)
values ($1::text, $2::timestamptz, $3::text, $4::int, nullif($5::text, ''));
`

const QInsertJobFile = `--sql 3a8d61f0-42cb-4e7a-9c55-0b1f2d6e8a93
insert into validation_files(job_id, idx, filename, path, status, is_valid, error)
values ($1::text, $2::int, $3::text, $4::text, $5::text, $6::bool, nullif($7::text, ''));
`

const QInsertRejectedFile = `--sql e5b90c24-7d18-4a6f-b3e2-8c4a1f0d9b67
insert into rejected_files(job_id, filename, reason)
values ($1::text, $2::text, $3::text);
`

const QSelectJob = `--sql 1f6e83a9-0b47-4c2d-a5e8-d92c7b3f4061
select id, created_at, status, progress, coalesce(report_path, '')
from validation_jobs
where id = $1::text
limit 1;
`

const QSelectJobFiles = `--sql 9d4c2e71-5f38-4b0a-8e6d-1a7b9c0f2354
select filename, path, status, coalesce(is_valid, false), coalesce(error, '')
from validation_files
where job_id = $1::text
order by idx asc;
`

const QSelectRejectedFiles = `--sql 6b1a9f43-8e27-4d50-b9c6-3f0e5a2d7c18
select filename, reason
from rejected_files
where job_id = $1::text
order by filename asc;
`

const QClaimPendingJob = `--sql 482e7d5a-1c96-4f3b-a0d8-7e2b4c9f6130
update validation_jobs
set status = $1::text
where id = (
  select id from validation_jobs
  where status = $2::text
  order by created_at asc
  limit 1
  for update skip locked
)
returning id, created_at, status, progress, coalesce(report_path, '');
`

const QUpdateJobProgress = `--sql b79c3f18-6a05-4e2d-9b71-4d8e0c5a2f96
update validation_jobs
set progress = $2::int
where id = $1::text;
`

const QUpdateJobFile = `--sql 0e5a8c37-2d91-4b64-8f0a-6c3e1d7b9245
update validation_files
set status = $3::text,
    is_valid = $4::bool,
    error = nullif($5::text, '')
where job_id = $1::text and idx = $2::int;
`

const QCompleteJob = `--sql d21b6e94-3f70-4a58-bc1d-9e8f2a0c4763
update validation_jobs
set status = $2::text,
    progress = 100,
    report_path = $3::text
where id = $1::text;
`
